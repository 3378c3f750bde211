// Package router registers the HTTP routes of the seat planner API.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/classroom-seat-planner/internal/handler"
	"github.com/iliyamo/classroom-seat-planner/internal/middleware"
)

// RegisterRoutes registers the unauthenticated endpoints: the health
// probe and the auth flow.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, so no JWT is needed.
	g.POST("/logout", a.Logout)
}

// RegisterPlanner registers every classroom-scoped endpoint.  All of
// them require a valid access token and the TEACHER or ADMIN role; the
// arrangement endpoints additionally carry a rate limit because they
// run the full solver.
func RegisterPlanner(e *echo.Echo, p *handler.PlannerHandler, a *handler.AuthHandler, jwtSecret string, rdb *redis.Client) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("TEACHER", "ADMIN"))

	auth.GET("/me", a.Me)

	// Classrooms.
	auth.POST("/classrooms", p.CreateClassroom)
	auth.GET("/classrooms", p.ListClassrooms)
	auth.GET("/classrooms/:id", p.GetClassroom)
	auth.PUT("/classrooms/:id", p.UpdateClassroom)
	auth.DELETE("/classrooms/:id", p.DeleteClassroom)

	// Roster.
	auth.POST("/classrooms/:id/students", p.CreateStudent)
	auth.POST("/classrooms/:id/students/import", p.ImportStudents)
	auth.GET("/classrooms/:id/students", p.ListStudents)
	auth.PUT("/classrooms/:id/students/:studentId", p.UpdateStudent)
	auth.DELETE("/classrooms/:id/students/:studentId", p.DeleteStudent)

	// Seats and the grid.
	auth.POST("/classrooms/:id/seats/move", p.MoveStudent)
	auth.POST("/classrooms/:id/seats/move-batch", p.MoveStudents)
	auth.POST("/classrooms/:id/seats/clear", p.ClearSeat)
	auth.POST("/classrooms/:id/seats/cell-type", p.SetCellType)
	auth.POST("/classrooms/:id/seats/group", p.AssignSeatGroup)
	auth.POST("/classrooms/:id/seats/group-batch", p.AssignSeatGroups)

	// Groups.
	auth.POST("/classrooms/:id/groups", p.CreateGroup)
	auth.GET("/classrooms/:id/groups", p.ListGroups)
	auth.PUT("/classrooms/:id/groups/:groupId", p.RenameGroup)
	auth.PUT("/classrooms/:id/groups/:groupId/leader", p.SetGroupLeader)
	auth.DELETE("/classrooms/:id/groups/:groupId", p.DeleteGroup)
	auth.POST("/classrooms/:id/groups/rotate", p.RotateGroups)

	// Constraints.
	auth.POST("/classrooms/:id/constraints", p.CreateConstraint)
	auth.GET("/classrooms/:id/constraints", p.ListConstraints)
	auth.PUT("/classrooms/:id/constraints/:constraintId", p.ToggleConstraint)
	auth.DELETE("/classrooms/:id/constraints/:constraintId", p.DeleteConstraint)

	// Arranging is the expensive path; cap it per user.
	limited := auth.Group("", middleware.RateLimit(rdb, 10, time.Minute))
	limited.POST("/classrooms/:id/arrange", p.Arrange)
	limited.POST("/classrooms/:id/balance", p.SuggestBalance)

	// History.
	auth.POST("/classrooms/:id/undo", p.Undo)
	auth.POST("/classrooms/:id/redo", p.Redo)
	auth.GET("/classrooms/:id/history", p.HistoryDepths)

	// Snapshots.
	auth.GET("/classrooms/:id/export", p.ExportLayout)
	auth.POST("/classrooms/:id/snapshots", p.SaveSnapshot)
	auth.GET("/classrooms/:id/snapshots", p.ListSnapshots)
	auth.POST("/classrooms/:id/snapshots/:snapshotId/apply", p.ApplySnapshot)
	auth.DELETE("/classrooms/:id/snapshots/:snapshotId", p.DeleteSnapshot)
}
