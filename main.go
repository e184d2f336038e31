package main

import (
	"ImageHosting/config"
	"ImageHosting/internal/handler"
	"ImageHosting/internal/repo"
	"ImageHosting/internal/service"
	"ImageHosting/internal/storage"
	"ImageHosting/router"
	"ImageHosting/utils"
	"context"
	"log"
)

func newBlobStore(ctx context.Context) (storage.Store, error) {
	if config.AppConfig.StorageBackend == "minio" {
		return storage.NewMinioStore(ctx)
	}
	return storage.NewDiskStore(config.AppConfig.ImagesDir)
}

// main constructs the stores once and injects them into the service.
func main() {
	config.InitConfig()

	db, err := repo.InitMysql()
	if err != nil {
		log.Fatal("init mysql fail: ", err)
	}

	var cache utils.Cache
	if client, err := repo.InitRedis(); err != nil {
		log.Printf("redis unavailable, listing cache disabled: %v", err)
	} else {
		cache = utils.NewRedisCache(client)
	}

	ctx := context.Background()
	blobs, err := newBlobStore(ctx)
	if err != nil {
		log.Fatal("init blob store fail: ", err)
	}

	svc := service.NewImageService(service.NewGormImageStore(db), blobs, cache, config.AppConfig.ListCacheTTL)
	r := router.InitRouter(handler.NewImageHandler(svc))

	r.Run(":" + config.AppConfig.Port)
}
