package handlers

import (
	"ClinicQueue/apperrors"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP responses. A slot clash carries
// the currently free slots so the client can re-offer valid choices.
func respondError(c *gin.Context, err error) {
	var slotErr *apperrors.SlotUnavailableError
	if errors.As(err, &slotErr) {
		c.JSON(409, gin.H{
			"error":           slotErr.Error(),
			"requested_time":  slotErr.Requested.Format(time.RFC3339),
			"available_slots": formatSlotList(slotErr.Available),
		})
		return
	}

	var conflictErr *apperrors.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(409, gin.H{"error": conflictErr.Error()})
		return
	}

	var transitionErr *apperrors.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(409, gin.H{"error": transitionErr.Error(), "from": transitionErr.From, "to": transitionErr.To})
		return
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(404, gin.H{"error": "not found"})
		return
	}

	var persistenceErr *apperrors.PersistenceError
	if errors.As(err, &persistenceErr) {
		log.Printf("Persistence failure: %v", persistenceErr)
		c.JSON(500, gin.H{"error": "internal error"})
		return
	}

	c.JSON(400, gin.H{"error": err.Error()})
}

func formatSlotList(slots []time.Time) []string {
	formatted := make([]string, 0, len(slots))
	for _, slot := range slots {
		formatted = append(formatted, slot.Format(time.RFC3339))
	}
	return formatted
}
