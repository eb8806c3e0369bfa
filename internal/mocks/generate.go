package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name FootballDataClient --dir ../usecase --output usecase --outpkg usecasemock --filename football_client_mock.go
