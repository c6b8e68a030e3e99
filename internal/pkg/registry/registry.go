package registry

import (
	"fmt"
	"sort"
	"vibelog/internal/pkg/config"
	"vibelog/internal/pkg/event"
	"vibelog/internal/pkg/storage"
	"vibelog/internal/pkg/worker"
	"vibelog/pkg/cache"
	"vibelog/pkg/database"
	"vibelog/pkg/metrics"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Config   *config.Config
	DB       *gorm.DB
	SQLX     *sqlx.DB
	Tx       database.Transactor
	Cache    cache.CounterCache
	Router   *gin.Engine
	Bus      *event.Bus
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	JWT      *utils.JWTManager
	Storage  storage.MediaStorage
	PushPool *worker.PushPool
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册、事件订阅等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// 例如：notification 模块需要先于产生事件的模块完成订阅
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块，重名时 panic
func Register(module Module) {
	if _, exists := moduleRegistry[module.Name()]; exists {
		panic(fmt.Sprintf("module %q registered twice", module.Name()))
	}
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// Sorted 按优先级排序，优先级相同按名称
func Sorted(modules map[string]Module) []Module {
	list := make([]Module, 0, len(modules))
	for _, m := range modules {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority() != list[j].Priority() {
			return list[i].Priority() < list[j].Priority()
		}
		return list[i].Name() < list[j].Name()
	})
	return list
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range Sorted(moduleRegistry) {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		if ctx.Log != nil {
			ctx.Log.Info("module initialized", zap.String("module", module.Name()), zap.Int("priority", module.Priority()))
		}
	}
	return nil
}
