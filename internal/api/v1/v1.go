package v1

import (
	"github.com/inkpress/inkwell/internal/reactions"
	"github.com/inkpress/inkwell/pkg/logger"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	Redis     *storage.RedisClient
	Logger    *logger.Logger
	Reactions *reactions.Store
	EmailCfg  utils.EmailConfig
	Validator = utils.NewValidator()
)

// Setup wires the package-level handler dependencies once at startup.
func Setup(db *gorm.DB, rclient *storage.RedisClient, log *logger.Logger, emailCfg utils.EmailConfig) {
	DB = db
	Redis = rclient
	Logger = log
	EmailCfg = emailCfg
	Reactions = reactions.NewStore(db, rclient)
}
