package ports

import "github.com/usermgmt/admin-console/internal/core/domain"

// Notifier delivers notifications to whatever surface shows them.
type Notifier interface {
	Notify(n domain.Notification)
}
