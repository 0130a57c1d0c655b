package router

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// APIModule / AdminModule 模块按端实现对应接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

var (
	mu        sync.Mutex
	apiMods   []APIModule
	adminMods []AdminModule
)

// Register 统一注册入口：根据类型断言分发到 API/Admin 列表，挂载按注册顺序
func Register(mod any) {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		apiMods = append(apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		adminMods = append(adminMods, m)
	}
}

func MountAllAPI(api *gin.RouterGroup) {
	mu.Lock()
	mods := append([]APIModule(nil), apiMods...)
	mu.Unlock()
	for _, m := range mods {
		m.MountAPI(api)
	}
}

func MountAllAdmin(admin *gin.RouterGroup) {
	mu.Lock()
	mods := append([]AdminModule(nil), adminMods...)
	mu.Unlock()
	for _, m := range mods {
		m.MountAdmin(admin)
	}
}
