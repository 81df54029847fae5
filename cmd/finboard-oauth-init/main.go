// Command finboard-oauth-init runs the OAuth consent flow once and saves a
// read-only Sheets token for the sheets backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"finboard/internal/cli"
	"finboard/internal/provider/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := google.OAuthConfigFromEnv()
	if err != nil {
		cli.Fatal(logger, "Failed to load OAuth client", err)
	}

	// The OAuth client must list this URI as an authorized redirect.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	state := fmt.Sprintf("finboard-%d", time.Now().UnixNano())
	codeCh := make(chan string, 1)

	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errStr := q.Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})
	srv := &http.Server{Addr: "localhost:" + redirectPort, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Callback server error", "error", err)
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	select {
	case code := <-codeCh:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			cli.Fatal(logger, "Token exchange failed", err)
		}
		out := google.TokenFile()
		if err := google.SaveToken(out, tok); err != nil {
			cli.Fatal(logger, "Failed to save token", err, "file", out)
		}
		logger.Info("Saved OAuth token", "file", out)
	case <-time.After(5 * time.Minute):
		cli.Fatal(logger, "Authorization timed out", errors.New("no callback within 5m"))
	case <-sigCh:
		cli.Fatal(logger, "Authorization interrupted", errors.New("interrupted"))
	}
}
