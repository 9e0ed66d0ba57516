package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/guild --output domain/guild --outpkg guildmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name LeagueAPI --dir ../usecase --output usecase --outpkg usecasemock --filename league_api_mock.go
