package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-panel/config"
	"weather-panel/internal/api"
	"weather-panel/internal/mqtt"
	"weather-panel/internal/panel"
	"weather-panel/internal/storage"
	"weather-panel/internal/tui"
	"weather-panel/internal/ui"
	"weather-panel/internal/weather"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weather-panel",
		Short: "Current weather panel",
		Long:  "Look up the current weather for a city in the browser, the terminal, or one-shot from the CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, weather.Provider, weather.Unit, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	unit, err := weather.ParseUnit(cfg.Weather.Units)
	if err != nil {
		return nil, nil, "", fmt.Errorf("invalid weather.units: %w", err)
	}

	provider, err := weather.NewProvider(weather.ProviderConfig{
		Name:         cfg.Weather.Provider,
		BaseURL:      cfg.Weather.BaseURL,
		GeocodingURL: cfg.Weather.GeocodingURL,
		APIKey:       cfg.Weather.APIKey,
		Timeout:      cfg.Weather.Timeout,
	})
	if err != nil {
		return nil, nil, "", err
	}

	return cfg, provider, unit, nil
}

// openLookupLog opens the lookup database and prunes entries past retention.
// An empty path disables the log.
func openLookupLog(cfg config.DatabaseConfig) (*storage.Database, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	db, err := storage.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Printf("Database opened at %s", cfg.Path)

	if cfg.Retention > 0 {
		removed, err := db.CleanOldLookups(cfg.Retention)
		if err != nil {
			log.Printf("Error cleaning old lookups: %v", err)
		} else if removed > 0 {
			log.Printf("Removed %d lookups older than %s", removed, cfg.Retention)
		}
	}
	return db, nil
}

func newPanel(cfg *config.Config, provider weather.Provider, unit weather.Unit, db *storage.Database, publisher panel.Publisher) *panel.Panel {
	pc := panel.Config{
		Provider:    provider,
		Publisher:   publisher,
		DefaultCity: cfg.Weather.DefaultCity,
		Unit:        unit,
	}
	if db != nil {
		pc.Recorder = db
	}
	return panel.New(pc)
}

// fetchTimeout bounds a whole panel fetch; Open-Meteo makes two calls.
func fetchTimeout(cfg *config.Config) time.Duration {
	return 2*cfg.Weather.Timeout + time.Second
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web panel",
		Long:  "Start the web panel, the JSON API, and the MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, provider, unit, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openLookupLog(cfg.Database)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			// Create MQTT publisher
			var snapshots panel.Publisher
			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
			} else {
				defer publisher.Close()
				snapshots = publisher
				if cfg.MQTT.Enabled {
					log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
					// Publish Home Assistant discovery
					if err := publisher.PublishHomeAssistantDiscovery(cfg.Weather.DefaultCity, unit); err != nil {
						log.Printf("Error publishing discovery: %v", err)
					}
				}
			}

			p := newPanel(cfg, provider, unit, db, snapshots)

			// Handle signals
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			server := api.NewServer(api.ServerConfig{
				Port:         cfg.API.Port,
				Panel:        p,
				Database:     db,
				WebPath:      cfg.API.WebPath,
				FetchTimeout: fetchTimeout(cfg),
			})

			// Startup fetch for the default city
			if req, ok := p.StartInit(); ok {
				server.RunInBackground(req)
			}

			if cfg.API.Enabled {
				go func() {
					if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Printf("API server error: %v", err)
					}
				}()
			} else {
				log.Println("API server disabled; the panel is only reachable over MQTT")
			}

			log.Printf("Weather Panel started with %s provider. Press Ctrl+C to stop.", p.ProviderName())

			// Wait for signal
			<-sigChan
			log.Println("Shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Stop(ctx); err != nil {
				log.Printf("Error stopping API server: %v", err)
			}

			return nil
		},
	}
}

func tuiCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Show the panel in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal belongs to the UI, so logs go to a file
			f, err := tea.LogToFile(logFile, "")
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()

			cfg, provider, unit, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openLookupLog(cfg.Database)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, newPanel(cfg, provider, unit, db, nil), fetchTimeout(cfg))
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "weather-panel-tui.log", "file that receives log output")
	return cmd
}

func lookupCmd() *cobra.Command {
	var (
		units   string
		asJSON  bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <place>",
		Short: "Print the current weather for a place once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, provider, unit, err := loadConfig()
			if err != nil {
				return err
			}
			if units != "" {
				if unit, err = weather.ParseUnit(units); err != nil {
					return err
				}
			}

			var db *storage.Database
			if !noStore {
				if db, err = openLookupLog(cfg.Database); err != nil {
					return err
				}
				if db != nil {
					defer db.Close()
				}
			}

			p := newPanel(cfg, provider, unit, db, nil)

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout(cfg))
			defer cancel()

			fetchErr := p.FetchWeather(ctx, args[0], unit)
			view := p.View()

			if asJSON {
				output, _ := json.MarshalIndent(struct {
					Snapshot *weather.Snapshot `json:"snapshot"`
					Notice   string            `json:"notice,omitempty"`
				}{view.Snapshot, view.Notice.Message()}, "", "  ")
				fmt.Println(string(output))
			} else {
				fmt.Print(ui.Text(ui.Present(view)))
			}

			return fetchErr
		},
	}

	cmd.Flags().StringVarP(&units, "units", "u", "", "metric or imperial (defaults to weather.units)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record the lookup")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the connection to the weather provider",
		Long:  "Fetch the default city once and report whether the provider answered",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, provider, unit, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Testing %s provider with %q...\n", provider.Name(), cfg.Weather.DefaultCity)

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout(cfg))
			defer cancel()

			started := time.Now()
			snapshot, err := provider.Current(ctx, cfg.Weather.DefaultCity, unit)
			if err != nil {
				fmt.Printf("Connection FAILED: %v\n", err)
				return err
			}

			fmt.Printf("Connection SUCCESS! (%s)\n", time.Since(started).Round(time.Millisecond))
			fmt.Printf("\nCurrent Weather:\n")
			fmt.Printf("  Location:    %s\n", ui.Location(snapshot.Name, snapshot.Country))
			fmt.Printf("  Temperature: %s\n", ui.Temperature(snapshot.Temp, snapshot.Unit))
			fmt.Printf("  Condition:   %s (%s)\n", snapshot.Description, snapshot.Symbol())
			fmt.Printf("  Wind Speed:  %s\n", ui.Speed(snapshot.WindSpeed, snapshot.Unit))
			fmt.Printf("  Humidity:    %s\n", ui.Percent(snapshot.Humidity))

			return nil
		},
	}
}
