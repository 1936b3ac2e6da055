package cart

import (
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is the transient user-facing message every cart operation produces.
type Notice struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind,omitempty"`
	ProductID int       `json:"product_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier delivers notices and cart snapshots to the signed-in user.
type Notifier interface {
	Notify(userID string, n Notice)
	CartChanged(userID string, c models.Cart)
}

type NopNotifier struct{}

func (NopNotifier) Notify(string, Notice)           {}
func (NopNotifier) CartChanged(string, models.Cart) {}

func infoNotice(msg string, productID int) Notice {
	return Notice{Level: LevelInfo, Message: msg, ProductID: productID, At: time.Now().UTC()}
}

func errorNotice(e *Error, level string) Notice {
	return Notice{Level: level, Message: e.Error(), Kind: e.Kind.String(), ProductID: e.ProductID, At: time.Now().UTC()}
}
