package api

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"weather-panel/internal/panel"
	"weather-panel/internal/storage"
	"weather-panel/internal/ui"
	"weather-panel/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLookupLimit = 50
	maxLookupLimit     = 500
)

type Server struct {
	router       *gin.Engine
	server       *http.Server
	panel        *panel.Panel
	db           *storage.Database
	port         int
	webPath      string
	fetchTimeout time.Duration
	fetches      sync.WaitGroup
}

type ServerConfig struct {
	Port         int
	Panel        *panel.Panel
	Database     *storage.Database
	WebPath      string
	FetchTimeout time.Duration
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(requestID())

	// Default web path
	webPath := cfg.WebPath
	if webPath == "" {
		webPath = "./web"
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &Server{
		router:       router,
		panel:        cfg.Panel,
		db:           cfg.Database,
		port:         cfg.Port,
		webPath:      webPath,
		fetchTimeout: timeout,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Load HTML templates
	tmpl := template.Must(template.ParseGlob(s.webPath + "/templates/*.html"))
	s.router.SetHTMLTemplate(tmpl)

	// Serve static files
	s.router.Static("/static", s.webPath+"/static")

	// Panel routes
	s.router.GET("/", s.panelHandler)
	s.router.HEAD("/", s.panelHandler)
	s.router.POST("/search", s.searchFormHandler)
	s.router.POST("/unit", s.unitFormHandler)
	s.router.POST("/theme", s.themeFormHandler)

	// Health check
	s.router.GET("/health", s.healthHandler)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.GET("/state", s.stateHandler)
		api.PUT("/query", s.updateQueryHandler)
		api.POST("/search", s.searchHandler)
		api.PUT("/unit", s.updateUnitHandler)
		api.POST("/theme", s.toggleThemeHandler)
		api.GET("/icons/:code", s.iconHandler)
		api.GET("/lookups", s.lookupsHandler)
		api.GET("/lookups/summary", s.lookupSummaryHandler)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

// Stop shuts the HTTP server down and waits for background fetches.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.fetches.Wait()
	return err
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RunInBackground performs a started request outside any HTTP request so the
// page can show the loading state meanwhile. Stop waits for it.
func (s *Server) RunInBackground(req *panel.Request) {
	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		// failures are logged and recorded by the panel
		_ = req.Run(ctx)
	}()
}

type pageData struct {
	Page    ui.Page
	Search  ui.SearchBox
	Refresh bool
}

func (s *Server) panelHandler(c *gin.Context) {
	page := ui.Present(s.panel.View())
	c.HTML(http.StatusOK, "panel.html", pageData{
		Page:    page,
		Search:  ui.NewSearchBox(page.Query, nil, nil),
		Refresh: page.Results.Loading,
	})
}

func (s *Server) searchFormHandler(c *gin.Context) {
	var req *panel.Request
	box := ui.NewSearchBox(s.panel.View().Query, s.panel.UpdateQuery, func() {
		req, _ = s.panel.StartSearch()
	})

	box.Input(c.PostForm("q"))
	box.Click()

	if req != nil {
		s.RunInBackground(req)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) unitFormHandler(c *gin.Context) {
	unit, err := weather.ParseUnit(c.PostForm("unit"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	s.panel.SetUnit(unit)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) themeFormHandler(c *gin.Context) {
	s.panel.ToggleTheme()
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) healthHandler(c *gin.Context) {
	view := s.panel.View()

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"provider":  s.panel.ProviderName(),
		"loading":   view.Loading,
		"has_data":  view.Snapshot != nil,
		"lookups":   s.db != nil,
		"timestamp": time.Now(),
	})
}

type stateResponse struct {
	State panel.View `json:"state"`
	Page  ui.Page    `json:"page"`
}

func (s *Server) stateHandler(c *gin.Context) {
	view := s.panel.View()
	c.JSON(http.StatusOK, stateResponse{State: view, Page: ui.Present(view)})
}

type QueryRequest struct {
	Query *string `json:"query"`
}

func (s *Server) updateQueryHandler(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Query == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	s.panel.UpdateQuery(*req.Query)
	c.JSON(http.StatusOK, gin.H{"query": *req.Query})
}

// searchHandler submits the current query. With ?wait=true the fetch runs
// inside the request and the resulting state is returned.
func (s *Server) searchHandler(c *gin.Context) {
	req, ok := s.panel.StartSearch()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"fetched": false})
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); !wait {
		s.RunInBackground(req)
		c.JSON(http.StatusAccepted, gin.H{
			"fetched": true,
			"place":   req.Place(),
			"unit":    req.Unit(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.fetchTimeout)
	defer cancel()

	response := gin.H{
		"fetched": true,
		"place":   req.Place(),
		"unit":    req.Unit(),
	}
	if err := req.Run(ctx); err != nil {
		response["error"] = err.Error()
	}
	view := s.panel.View()
	response["state"] = view
	response["page"] = ui.Present(view)
	c.JSON(http.StatusOK, response)
}

type UnitRequest struct {
	Unit string `json:"unit" binding:"required"`
}

func (s *Server) updateUnitHandler(c *gin.Context) {
	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit, err := weather.ParseUnit(req.Unit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.panel.SetUnit(unit)
	c.JSON(http.StatusOK, gin.H{"unit": unit})
}

func (s *Server) toggleThemeHandler(c *gin.Context) {
	dark := s.panel.ToggleTheme()
	c.JSON(http.StatusOK, gin.H{"theme": ui.Theme(dark)})
}

func (s *Server) iconHandler(c *gin.Context) {
	code := c.Param("code")
	c.JSON(http.StatusOK, gin.H{
		"code": code,
		"icon": weather.ResolveIcon(code),
	})
}

func (s *Server) lookupsHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lookup log is disabled"})
		return
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if (fromStr == "") != (toStr == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both 'from' and 'to' are required for a range"})
		return
	}
	if fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date format"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date format"})
			return
		}

		records, err := s.db.GetLookupsByRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLookupLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLookupLimit
	}
	if limit > maxLookupLimit {
		limit = maxLookupLimit
	}

	records, err := s.db.GetRecentLookups(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) lookupSummaryHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lookup log is disabled"})
		return
	}

	counts, err := s.db.CountByOutcome()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}
