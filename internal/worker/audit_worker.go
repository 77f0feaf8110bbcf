package worker

import (
	"github.com/airo-kpi/redo-service/internal/service"
)

// StartAuditWorker registers report audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
