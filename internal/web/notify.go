package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/mandjevant/noteboard/internal/crud"
	"github.com/mandjevant/noteboard/internal/logging"
)

// flashCookie carries one pending notification to the next page render.
const flashCookie = "noteboard_flash"

// flashNotifier implements crud.Notifier by storing the notification in a
// short-lived cookie that the next full page render drains.
type flashNotifier struct {
	w http.ResponseWriter
}

func (f flashNotifier) Notify(ctx context.Context, n crud.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		logging.FromContext(ctx).Error("encode flash", "error", err)
		return
	}
	http.SetCookie(f.w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending notification, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *crud.Notification {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var n crud.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil
	}
	return &n
}
