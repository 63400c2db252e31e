package handler

import "github.com/school/backend/internal/interfaces/http/router"

// Routes returns the /teachers route group
func (h *TeacherHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("teachers", "/teachers")
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/export", h.Export)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

// Routes returns the /positions route group
func (h *PositionHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("positions", "/positions")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

// Routes returns the /users route group
func (h *UserHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("users", "/users")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	avatar := g.Group("avatar", "/:id/avatar")
	avatar.GET("", h.GetAvatarURL)
	avatar.PUT("", h.AttachAvatar)
	avatar.POST("/upload-url", h.RequestAvatarUpload)
	return g
}

// Routes returns the /system route group
func (h *SystemHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
	return g
}
