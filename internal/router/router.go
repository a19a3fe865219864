package router

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/handler"
	"github.com/noah-isme/campus-portal-api/internal/middleware"
	"github.com/noah-isme/campus-portal-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth         *handler.AuthHandler
	Students     *handler.StudentHandler
	Courses      *handler.CourseHandler
	Enrollment   *handler.EnrollmentHandler
	Fees         *handler.FeeHandler
	Academic     *handler.AcademicHandler
	Analytics    *handler.AnalyticsHandler
	Timetable    *handler.TimetableHandler
	Support      *handler.SupportHandler
	Announcement *handler.AnnouncementHandler
	Integrity    *handler.IntegrityHandler
	Ops          *handler.MetricsHandler
}

// Register mounts the ops endpoints at the root and the portal API under prefix.
func Register(r *gin.Engine, prefix string, tokens middleware.TokenValidator, h Handlers) {
	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	staff := []gin.HandlerFunc{middleware.JWT(tokens), middleware.RequireStaff()}
	caller := middleware.OptionalJWT(tokens)

	auth := api.Group("/auth")
	auth.POST("/signup", caller, h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)

	students := api.Group("/users/students", staff...)
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	management := api.Group("/management")
	management.GET("/fees", caller, h.Fees.Report)
	management.GET("/fees/download", caller, h.Fees.Download)

	managed := management.Group("", staff...)
	managed.POST("/courses", h.Courses.Create)
	managed.PUT("/courses/:courseCode", h.Courses.Update)
	managed.DELETE("/courses/:courseCode", h.Courses.Delete)
	managed.GET("/enrollment/:courseCode", h.Enrollment.View)
	managed.POST("/enrollment/:courseCode", h.Enrollment.Transition)
	managed.POST("/fees", h.Fees.Create)
	managed.POST("/fees/export", h.Fees.Export)
	managed.PUT("/fees/:id", h.Fees.UpdateStatus)

	marks := api.Group("/marks", staff...)
	marks.POST("/entry", h.Academic.RecordMark)
	marks.PUT("/class-average", h.Academic.RecordClassAverage)

	api.GET("/analytics/marks/:studentId", caller, h.Analytics.Marks)

	attendance := api.Group("/attendance")
	attendance.POST("/log", append(staff, h.Academic.LogAttendance)...)
	attendance.GET("/summary/:studentId", caller, h.Analytics.AttendanceSummary)
	attendance.GET("/:studentId/:date", caller, h.Academic.AttendanceByDate)

	timetable := api.Group("/timetable")
	timetable.POST("", append(staff, h.Timetable.Create)...)
	timetable.GET("/:userRole/:username", caller, h.Timetable.ForRole)

	appointments := api.Group("/appointments")
	appointments.POST("", caller, h.Support.BookAppointment)
	appointments.GET("/:teacherUsername", append(staff, h.Support.PendingAppointments)...)

	tickets := api.Group("/tickets")
	tickets.POST("", caller, h.Support.SubmitTicket)
	tickets.GET("/open", append(staff, h.Support.OpenTickets)...)
	tickets.PUT("/:id", append(staff, h.Support.UpdateTicketStatus)...)

	announcements := api.Group("/announcements")
	announcements.GET("", caller, h.Announcement.List)
	announcements.POST("", append(staff, h.Announcement.Create)...)
	announcements.PUT("/:id", append(staff, h.Announcement.Update)...)
	announcements.DELETE("/:id", append(staff, h.Announcement.Delete)...)

	courses := api.Group("/courses")
	courses.GET("/all", caller, h.Courses.ListAll)
	courses.GET("/my-courses", append(staff, h.Courses.ListMine)...)

	admin := api.Group("/admin", middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/integrity/sweep", h.Integrity.Trigger)
	admin.GET("/integrity/report", h.Integrity.Report)
}
