package controllers

import (
	"ClinicQueue/handlers"

	"github.com/gin-gonic/gin"
)

// SetupClinicRoutes registers the queue, booking, patient, inbox, settings
// and reminder routes directly on the router.
func SetupClinicRoutes(router *gin.Engine, appointmentHandler *handlers.AppointmentHandler, bookingHandler *handlers.BookingHandler, patientHandler *handlers.PatientHandler, visitHandler *handlers.VisitHandler, chatHandler *handlers.ChatHandler, settingHandler *handlers.SettingHandler, reminderHandler *handlers.ReminderHandler, eventsHandler *handlers.EventsHandler) {
	router.GET("/queue", appointmentHandler.GetQueue)
	router.GET("/appointments", appointmentHandler.ListAppointments)
	router.GET("/appointments/:appointment_id", appointmentHandler.GetAppointmentByID)
	router.POST("/appointments/:appointment_id/check-in", appointmentHandler.CheckIn)
	router.POST("/appointments/:appointment_id/start-consultation", appointmentHandler.StartConsultation)
	router.POST("/appointments/:appointment_id/end-consultation", appointmentHandler.EndConsultation)
	router.POST("/appointments/:appointment_id/no-show", appointmentHandler.MarkNoShow)
	router.POST("/appointments/:appointment_id/late", appointmentHandler.MarkLate)
	router.POST("/appointments/:appointment_id/ensure-patient", appointmentHandler.EnsurePatient)

	router.GET("/slots", bookingHandler.GetAvailableSlots)
	router.POST("/bookings", bookingHandler.CreateBooking)

	router.POST("/patients", patientHandler.CreatePatient)
	router.GET("/patients", patientHandler.GetAllPatients)
	router.GET("/patients/:patient_id", patientHandler.GetPatientByID)
	router.PUT("/patients/:patient_id", patientHandler.UpdatePatient)
	router.POST("/patients/:patient_id/visits", visitHandler.SaveConsultation)
	router.GET("/patients/:patient_id/visits", visitHandler.GetVisitHistory)

	router.POST("/conversations", chatHandler.StartConversation)
	router.GET("/conversations", chatHandler.ListConversations)
	router.GET("/conversations/:conversation_id/messages", chatHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", chatHandler.SendMessage)

	router.GET("/settings/:key", settingHandler.GetSetting)
	router.PUT("/settings/:key", settingHandler.UpdateSetting)

	router.POST("/reminders/run", reminderHandler.RunSweep)

	router.GET("/events/:topic", eventsHandler.Stream)
}
