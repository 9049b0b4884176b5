package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SREYASABU/integration-platform/config"
	"github.com/SREYASABU/integration-platform/controllers"
	"github.com/SREYASABU/integration-platform/database"
	platformmiddleware "github.com/SREYASABU/integration-platform/middleware"
	"github.com/SREYASABU/integration-platform/provider"
	"github.com/SREYASABU/integration-platform/repositories"
	"github.com/SREYASABU/integration-platform/services"
	"github.com/SREYASABU/integration-platform/widget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// `connect` drives the client-side widget against a running server;
	// everything else serves.
	if len(os.Args) > 1 && os.Args[1] == "connect" {
		if err := runConnect(cfg); err != nil {
			log.Fatalf("Connect failed: %v", err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Initialize HubSpot provider
	hubspot, err := provider.NewHubSpotProvider(provider.HubSpotConfig{
		ClientID:     cfg.HubSpot.ClientID,
		ClientSecret: cfg.HubSpot.ClientSecret,
		RedirectURI:  cfg.HubSpot.RedirectURI,
		Scopes:       cfg.HubSpot.Scopes,
	})
	if err != nil {
		log.Fatalf("Failed to initialize HubSpot provider: %v", err)
	}

	// Initialize services and controllers
	srvs := services.NewServices(repos, hubspot, cfg.StateTTL)
	ctrl := controllers.NewControllers(srvs, cfg.FrontendBaseURL)

	// Set up router
	r := setupRouter(ctrl, repos)

	// Expired state tokens pile up whenever users abandon the popup
	go sweepStates(srvs)

	fmt.Printf("🚀 Integration platform starting on port %s\n", cfg.Port)
	fmt.Printf("🔗 OAuth callback: %s\n", cfg.HubSpot.RedirectURI)
	fmt.Printf("🗃️  Database: %s\n", cfg.DatabasePath)

	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, repos *repositories.Repositories) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // 60 second timeout for OAuth exchanges
	r.Use(middleware.Compress(5))
	r.Use(platformmiddleware.Identify)
	r.Use(platformmiddleware.AuditLogger(repos.Audit))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "integration-platform"}`)
	})

	r.Route("/integrations/hubspot", func(r chi.Router) {
		r.Post("/authorize", ctrl.Integration.Authorize)
		r.Get("/authorize", ctrl.Integration.AuthorizeRedirect)
		r.Get("/oauth2callback", ctrl.Integration.OAuthCallback)
		r.Post("/credentials", ctrl.Integration.Credentials)
		r.Post("/get_hubspot_items", ctrl.Integration.LoadItems)
		r.Get("/items", ctrl.Integration.Items)
	})

	return r
}

// sweepStates periodically removes expired OAuth state tokens
func sweepStates(srvs *services.Services) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := srvs.Integration.SweepExpiredStates(); err != nil {
			log.Printf("Failed to sweep expired oauth states: %v", err)
		}
	}
}

// runConnect runs the full widget lifecycle from the terminal: authorize,
// open the browser, wait for the user to finish, exchange, list items.
func runConnect(cfg *config.Config) error {
	userID, orgID := "default", "default"
	if len(os.Args) > 2 {
		userID = os.Args[2]
	}
	if len(os.Args) > 3 {
		orgID = os.Args[3]
	}

	opener := &widget.BrowserOpener{
		OnOpen: func(popup *widget.SignalPopup, url string) {
			fmt.Printf("Opened authorization page:\n  %s\n", url)
			fmt.Println("Press enter once you have finished (or abandoned) authorization...")
			go func() {
				_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
				popup.Close()
			}()
		},
	}

	w, err := widget.New(widget.Config{
		Client: widget.NewClient(cfg.BackendBaseURL, nil),
		Opener: opener,
		Store:  &widget.MemoryStore{},
		UserID: userID,
		OrgID:  orgID,
	})
	if err != nil {
		return err
	}

	w.Subscribe(func(state widget.State) {
		fmt.Printf("Connection state: %s\n", state)
	})

	ctx := context.Background()
	if err := w.Connect(ctx); err != nil {
		return err
	}

	if w.State() != widget.Connected {
		fmt.Println("Authorization was not completed; nothing to load.")
		return nil
	}

	items, err := w.LoadItems(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d items:\n", len(items))
	for _, item := range items {
		fmt.Printf("  [%s] %s (%s)\n", item.ID, item.Title, item.Type)
	}

	return nil
}
