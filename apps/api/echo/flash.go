package echoapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const flashCookieName = "studysitare_flash"

const (
	flashError   = "error"
	flashSuccess = "success"
)

// Flash is a one-shot message carried across a redirect, in the manner of a
// server-rendered app's flash messages. It rides a short-lived cookie and is
// consumed by the next page load.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

func addFlash(ctx echo.Context, message, category string) {
	flashes := readFlashes(ctx)
	flashes = append(flashes, Flash{Message: message, Category: category})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func readFlashes(ctx echo.Context) []Flash {
	cookie, err := ctx.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

// popFlashes returns the pending flash messages and clears them.
func popFlashes(ctx echo.Context) []Flash {
	flashes := readFlashes(ctx)
	if flashes == nil {
		return []Flash{}
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return flashes
}
