/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	_ "embed"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

//go:embed corpse/index.html
var indexHTML []byte

//go:embed corpse/app.css
var corpseCSS []byte

//go:embed corpse/app.js
var corpseJS []byte

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// serveEmbedded serves one of the browser client's files. The HTML page also
// hands out the player cookie.
func serveEmbedded(cfg *Config, contentType string, data []byte, setCookie bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		if setCookie {
			_ = getOrSetPlayerID(w, r)
		}

		written, err := w.Write(data)
		if err != nil {
			log.Debug().Str("component", "SERVE").Str("path", r.URL.Path).Err(err).Msg("write failed")

			return
		}

		log.Debug().
			Str("component", "SERVE").
			Str("path", r.URL.Path).
			Str("size", humanReadableSize(int64(written))).
			Str("remote", realIP(r)).
			Dur("elapsed", time.Since(startTime).Round(time.Microsecond)).
			Msg("served file")
	}
}
