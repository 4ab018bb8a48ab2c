package worker

import (
	"github.com/spec-kit/courier-service/internal/service"
)

// StartActivityWorker registers the package activity handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
