package auth

import (
	"github.com/inkpress/inkwell/pkg/logger"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"gorm.io/gorm"
)

type Options struct {
	DB      *gorm.DB
	Rclient *storage.RedisClient
	Logger  *logger.Logger
}
