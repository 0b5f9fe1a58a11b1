package mock

//go:generate minimock -g -i github.com/echobridge/relay-backend/pkg/repository.Repository -o ./ -s "_mock.gen.go"
//go:generate minimock -g -i github.com/echobridge/relay-backend/pkg/repository.ProfileCache -o ./ -s "_mock.gen.go"
//go:generate minimock -g -i github.com/echobridge/relay-backend/pkg/telegram.ClientI -o ./ -s "_mock.gen.go"
//go:generate minimock -g -i github.com/echobridge/relay-backend/pkg/backend.ClientI -o ./ -s "_mock.gen.go"
//go:generate minimock -g -i github.com/echobridge/relay-backend/pkg/minio.MinioI -o ./ -s "_mock.gen.go"
