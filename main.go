package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"digital-library/config"
	"digital-library/models"
	"digital-library/providers"
	"digital-library/providers/arxiv"
	"digital-library/providers/europepmc"
	"digital-library/services"
	"digital-library/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	articlesImportedCounter prometheus.Counter
	pdfMatchedCounter       prometheus.Counter
	notificationsCounter    prometheus.Counter
)

func init() {
	articlesImportedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "articles_imported_total",
		Help: "Total number of articles created through the bulk import pipeline.",
	})
	pdfMatchedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_pdfs_matched_total",
		Help: "Total number of PDFs matched and attached during bulk imports.",
	})
	notificationsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_emails_sent_total",
		Help: "Total number of subscriber notification mails sent.",
	})
	prometheus.MustRegister(articlesImportedCounter, pdfMatchedCounter, notificationsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to library database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Event{}, &models.Edition{}, &models.Author{}, &models.Article{}, &models.Subscription{})

	// Setup Services
	attachments, err := storage.NewS3Store(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	store := services.NewGormStore(db, logging)
	notifier := services.NewNotifyService(cfg, db, logging)
	notifier.Sent = func(n int) { notificationsCounter.Add(float64(n)) }
	importer := services.NewImportService(store, attachments, notifier, logging)
	scrapeProviders := []providers.Provider{
		arxiv.NewFetcher(cfg, logging),
		europepmc.NewFetcher(cfg, logging),
	}
	scraper := services.NewScrapeService(cfg, scrapeProviders, importer, logging)

	// Setup Router
	router := gin.Default()
	// metrics stay reachable without an API key
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Use(apiKeyAuthMiddleware(cfg))

	setupEventRoutes(router, db, logging)
	setupEditionRoutes(router, db, store, logging)
	setupArticleRoutes(router, db, store, attachments, notifier, importer, logging)
	setupAuthorRoutes(router, db, logging)
	setupSubscriptionRoutes(router, db, store, logging)
	setupScrapeRoutes(router, scraper, logging)

	// Setup Cron
	if cfg.CronSchedule != "" && cfg.ScrapeEvent != "" {
		cronScheduler := cron.New()
		cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logging.Info("Running scheduled scrape job...")
			query := "cat:" + cfg.ScrapeCategory
			result, err := scraper.Run(context.Background(), query, cfg.ScrapeEvent, time.Now().Year(), cfg.ArxivMaxResults)
			if err != nil {
				logging.Error("Scheduled scrape failed", zap.Error(err))
				return
			}
			articlesImportedCounter.Add(float64(len(result.Created)))
			logging.Info("Scheduled scrape completed", zap.Int("new_articles", len(result.Created)))
		})
		cronScheduler.Start()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupEventRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/events")

	rg.GET("/", func(c *gin.Context) {
		var events []models.Event
		if err := db.Find(&events).Error; err != nil {
			log.Error("Database query for events failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, events)
	})

	rg.POST("/", func(c *gin.Context) {
		var payload struct {
			Name        string `json:"name" binding:"required"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		event := models.Event{Name: payload.Name, Description: payload.Description}
		if err := db.Create(&event).Error; err != nil {
			log.Error("Failed to create event", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create event"})
			return
		}
		c.JSON(http.StatusCreated, event)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var event models.Event
		if err := db.First(&event, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, event)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var event models.Event
		if err := db.First(&event, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var payload struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if payload.Name != nil {
			event.Name = *payload.Name
		}
		if payload.Description != nil {
			event.Description = *payload.Description
		}
		if err := db.Save(&event).Error; err != nil {
			log.Error("Failed to update event", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update event"})
			return
		}
		c.JSON(http.StatusOK, event)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Event{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func setupEditionRoutes(router *gin.Engine, db *gorm.DB, store *services.GormStore, log *zap.Logger) {
	rg := router.Group("/editions")

	rg.GET("/", func(c *gin.Context) {
		var editions []models.Edition
		if err := db.Preload("Event").Find(&editions).Error; err != nil {
			log.Error("Database query for editions failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, editions)
	})

	rg.POST("/", func(c *gin.Context) {
		var payload struct {
			EventID   uint    `json:"event_id"`
			EventName string  `json:"event_name"`
			Year      *int    `json:"year"`
			Location  string  `json:"location"`
			StartDate *string `json:"start_date"`
			EndDate   *string `json:"end_date"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if payload.Year == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
			return
		}

		var event *models.Event
		switch {
		case payload.EventID != 0:
			var ev models.Event
			if err := db.First(&ev, payload.EventID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			event = &ev
		case payload.EventName != "":
			ev, err := store.GetOrCreateEvent(payload.EventName)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			event = ev
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_id or event_name required"})
			return
		}

		edition := models.Edition{
			EventID:   event.ID,
			Event:     *event,
			Year:      *payload.Year,
			Location:  payload.Location,
			StartDate: parseDate(payload.StartDate),
			EndDate:   parseDate(payload.EndDate),
		}
		if err := db.Omit("Event").Create(&edition).Error; err != nil {
			log.Error("Failed to create edition", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create edition"})
			return
		}
		c.JSON(http.StatusCreated, edition)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var edition models.Edition
		if err := db.Preload("Event").First(&edition, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "edition not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, edition)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var edition models.Edition
		if err := db.Preload("Event").First(&edition, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "edition not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var payload struct {
			EventID   *uint   `json:"event_id"`
			EventName *string `json:"event_name"`
			Year      *int    `json:"year"`
			Location  *string `json:"location"`
			StartDate *string `json:"start_date"`
			EndDate   *string `json:"end_date"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if payload.EventID != nil {
			var ev models.Event
			if err := db.First(&ev, *payload.EventID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			edition.EventID = ev.ID
			edition.Event = ev
		} else if payload.EventName != nil {
			ev, err := store.GetOrCreateEvent(*payload.EventName)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			edition.EventID = ev.ID
			edition.Event = *ev
		}
		if payload.Year != nil {
			edition.Year = *payload.Year
		}
		if payload.Location != nil {
			edition.Location = *payload.Location
		}
		if payload.StartDate != nil {
			edition.StartDate = parseDate(payload.StartDate)
		}
		if payload.EndDate != nil {
			edition.EndDate = parseDate(payload.EndDate)
		}
		if err := db.Omit("Event").Save(&edition).Error; err != nil {
			log.Error("Failed to update edition", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update edition"})
			return
		}
		c.JSON(http.StatusOK, edition)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Edition{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete edition"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func setupArticleRoutes(router *gin.Engine, db *gorm.DB, store *services.GormStore, attachments services.AttachmentStore, notifier *services.NotifyService, importer *services.ImportService, log *zap.Logger) {
	rg := router.Group("/articles")

	rg.GET("/", func(c *gin.Context) {
		query := db.Preload("Edition.Event").Preload("Authors").Model(&models.Article{})

		if title := c.Query("title"); title != "" {
			query = query.Where("articles.title ILIKE ?", "%"+title+"%")
		}
		if author := c.Query("author"); author != "" {
			// whole-word match against author names, case-insensitive
			pattern := `\m` + regexp.QuoteMeta(strings.TrimSpace(author)) + `\M`
			query = query.
				Joins("JOIN article_authors aa ON aa.article_id = articles.id").
				Joins("JOIN authors ON authors.id = aa.author_id").
				Where("authors.name ~* ?", pattern)
		}
		if event := c.Query("event"); event != "" {
			query = query.
				Joins("JOIN editions ON editions.id = articles.edition_id").
				Joins("JOIN events ON events.id = editions.event_id").
				Where("events.name ILIKE ?", "%"+event+"%")
		}

		var articles []models.Article
		if err := query.Distinct("articles.*").Find(&articles).Error; err != nil {
			log.Error("Database query for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.POST("/", func(c *gin.Context) {
		req, err := resolveArticlePayload(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}

		edition, err := resolveEditionRef(store, req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		article := models.Article{
			Title:     req.Title,
			Abstract:  req.Abstract,
			PDFURL:    req.PDFURL,
			EditionID: edition.ID,
			Edition:   *edition,
			Bibtex:    req.Bibtex,
		}
		if err := store.CreateArticle(&article); err != nil {
			log.Error("Failed to create article", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create article"})
			return
		}
		for _, name := range req.Authors {
			author, err := store.GetOrCreateAuthor(name)
			if err == nil {
				err = store.AddAuthor(&article, author)
			}
			if err != nil {
				log.Error("Failed to associate author", zap.String("author", name), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to associate author"})
				return
			}
			article.Authors = append(article.Authors, author)
		}

		if req.PDF != nil {
			key, url, err := attachments.Save(req.PDF.Name, req.PDF.Content)
			if err == nil {
				err = store.AttachPDF(&article, key, url)
			}
			if err != nil {
				log.Error("Failed to store uploaded PDF", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store pdf"})
				return
			}
		}

		notifier.ArticleCreated(c.Request.Context(), &article)
		c.JSON(http.StatusCreated, article)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var article models.Article
		if err := db.Preload("Edition.Event").Preload("Authors").First(&article, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var article models.Article
		if err := db.Preload("Edition.Event").Preload("Authors").First(&article, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var payload struct {
			Title     *string   `json:"title"`
			Abstract  *string   `json:"abstract"`
			PDFURL    *string   `json:"pdf_url"`
			Bibtex    *string   `json:"bibtex"`
			EditionID *uint     `json:"edition_id"`
			Authors   *[]string `json:"authors"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if payload.Title != nil {
			article.Title = *payload.Title
		}
		if payload.Abstract != nil {
			article.Abstract = *payload.Abstract
		}
		if payload.PDFURL != nil {
			article.PDFURL = *payload.PDFURL
		}
		if payload.Bibtex != nil {
			article.Bibtex = *payload.Bibtex
		}
		if payload.EditionID != nil {
			edition, err := store.GetEdition(*payload.EditionID)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "edition not found"})
				return
			}
			article.EditionID = edition.ID
			article.Edition = *edition
		}
		if err := db.Omit("Edition", "Authors").Save(&article).Error; err != nil {
			log.Error("Failed to update article", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update article"})
			return
		}

		if payload.Authors != nil {
			if err := db.Model(&article).Association("Authors").Clear(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update authors"})
				return
			}
			article.Authors = nil
			for _, name := range *payload.Authors {
				if name == "" {
					continue
				}
				author, err := store.GetOrCreateAuthor(name)
				if err == nil {
					err = store.AddAuthor(&article, author)
				}
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update authors"})
					return
				}
				article.Authors = append(article.Authors, author)
			}
		}
		c.JSON(http.StatusOK, article)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := db.Delete(&models.Article{}, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete article"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.POST("/bulk-import", func(c *gin.Context) {
		req, err := resolveImportPayload(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(req.Bibtex) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No BibTeX content provided"})
			return
		}

		result, err := importer.Run(c.Request.Context(), *req)
		if err != nil {
			status := http.StatusBadRequest
			if !errors.Is(err, services.ErrEditionNotFound) && !errors.Is(err, services.ErrAmbiguousEdition) {
				status = http.StatusInternalServerError
			}
			log.Error("Bulk import failed", zap.Error(err))
			c.JSON(status, gin.H{"error": fmt.Sprintf("Import failed: %v", err)})
			return
		}

		articlesImportedCounter.Add(float64(len(result.Created)))
		pdfMatchedCounter.Add(float64(result.PDFMatches))

		c.JSON(http.StatusCreated, gin.H{
			"success":           true,
			"created_count":     len(result.Created),
			"skipped_count":     len(result.Skipped),
			"error_count":       len(result.Errors),
			"articles":          result.Created,
			"skipped_articles":  result.Skipped,
			"processing_errors": result.Errors,
			"report":            services.BuildReport(result),
			"pdf_matches":       result.PDFMatches,
		})
	})
}

// articlePayload is the normalized create-article input, resolved from
// either a JSON body or a multipart form.
type articlePayload struct {
	Title     string
	Abstract  string
	PDFURL    string
	Bibtex    string
	Authors   []string
	EditionID uint
	EventName string
	Year      int

	// PDF is an uploaded attachment; multipart only.
	PDF *uploadedFile
}

type uploadedFile struct {
	Name    string
	Content []byte
}

func resolveArticlePayload(c *gin.Context) (*articlePayload, error) {
	ct := c.ContentType()
	if strings.Contains(ct, "multipart/form-data") || strings.Contains(ct, "application/x-www-form-urlencoded") {
		p := &articlePayload{
			Title:     c.PostForm("title"),
			Abstract:  c.PostForm("abstract"),
			PDFURL:    c.PostForm("pdf_url"),
			Bibtex:    c.PostForm("bibtex"),
			EditionID: uintForm(c, "edition_id"),
			EventName: c.PostForm("event_name"),
			Year:      intForm(c, "year"),
		}
		p.Authors = splitAuthorNames(c.PostForm("authors"))

		if fh, err := c.FormFile("pdf_file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return nil, errors.New("could not read pdf_file")
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, errors.New("could not read pdf_file")
			}
			p.PDF = &uploadedFile{Name: fh.Filename, Content: data}
		}
		return p, nil
	}

	var payload struct {
		Title     string      `json:"title"`
		Abstract  string      `json:"abstract"`
		PDFURL    string      `json:"pdf_url"`
		Bibtex    string      `json:"bibtex"`
		Authors   interface{} `json:"authors"`
		EditionID uint        `json:"edition_id"`
		EventName string      `json:"event_name"`
		Year      int         `json:"year"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, errors.New("invalid json")
	}
	p := &articlePayload{
		Title:     payload.Title,
		Abstract:  payload.Abstract,
		PDFURL:    payload.PDFURL,
		Bibtex:    payload.Bibtex,
		EditionID: payload.EditionID,
		EventName: payload.EventName,
		Year:      payload.Year,
	}

	// authors may be a list of names or a comma/semicolon separated string
	switch v := payload.Authors.(type) {
	case []interface{}:
		for _, item := range v {
			if name, ok := item.(string); ok && strings.TrimSpace(name) != "" {
				p.Authors = append(p.Authors, strings.TrimSpace(name))
			}
		}
	case string:
		p.Authors = splitAuthorNames(v)
	}
	return p, nil
}

func resolveEditionRef(store *services.GormStore, req *articlePayload) (*models.Edition, error) {
	if req.EditionID != 0 {
		return store.GetEdition(req.EditionID)
	}
	if req.Year == 0 {
		return nil, errors.New("year is required when not using edition_id")
	}
	var event *models.Event
	if req.EventName != "" {
		ev, err := store.GetOrCreateEvent(req.EventName)
		if err != nil {
			return nil, err
		}
		event = ev
	} else {
		return nil, errors.New("edition_id or event_name required")
	}
	return store.GetOrCreateEdition(event, req.Year)
}

func resolveImportPayload(c *gin.Context) (*services.ImportRequest, error) {
	req := &services.ImportRequest{}

	ct := c.ContentType()
	if strings.Contains(ct, "multipart/form-data") {
		if fh, err := c.FormFile("bibtex_file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return nil, errors.New("could not read bibtex_file")
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, errors.New("could not read bibtex_file")
			}
			req.Bibtex = string(data)
		} else {
			req.Bibtex = c.PostForm("bibtex_content")
		}

		if fh, err := c.FormFile("pdf_zip"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return nil, errors.New("could not read pdf_zip")
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, errors.New("could not read pdf_zip")
			}
			req.Archive = data
		}

		req.EditionID = uintForm(c, "edition_id")
		req.EventName = c.PostForm("event_name")
		req.Year = intForm(c, "year")
		return req, nil
	}

	var payload struct {
		BibtexContent string `json:"bibtex_content"`
		EditionID     uint   `json:"edition_id"`
		EventName     string `json:"event_name"`
		Year          int    `json:"year"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, errors.New("invalid json")
	}
	req.Bibtex = payload.BibtexContent
	req.EditionID = payload.EditionID
	req.EventName = payload.EventName
	req.Year = payload.Year
	return req, nil
}

func setupAuthorRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/authors")

	rg.GET("/:id/articles", func(c *gin.Context) {
		var author models.Author
		if err := db.First(&author, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "author not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		grouped, _, err := articlesByYear(db, &author)
		if err != nil {
			log.Error("Database query for author articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, grouped)
	})

	rg.GET("/by-name/:name", func(c *gin.Context) {
		// slug form: hyphens stand in for spaces
		name := strings.ReplaceAll(c.Param("name"), "-", " ")

		var author models.Author
		err := db.Where("LOWER(name) = LOWER(?)", name).First(&author).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = db.Where("name ILIKE ?", "%"+name+"%").Order("id").First(&author).Error
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		grouped, total, err := articlesByYear(db, &author)
		if err != nil {
			log.Error("Database query for author articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		years := make([]int, 0, len(grouped))
		for year := range grouped {
			years = append(years, year)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(years)))

		c.JSON(http.StatusOK, gin.H{
			"author":           author,
			"total_articles":   total,
			"years":            years,
			"articles_by_year": grouped,
		})
	})
}

// articlesByYear loads an author's articles grouped by edition year.
func articlesByYear(db *gorm.DB, author *models.Author) (map[int][]models.Article, int, error) {
	var articles []models.Article
	err := db.Preload("Edition.Event").Preload("Authors").
		Joins("JOIN article_authors aa ON aa.article_id = articles.id").
		Joins("JOIN editions ON editions.id = articles.edition_id").
		Where("aa.author_id = ?", author.ID).
		Order("editions.year DESC").
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}

	grouped := make(map[int][]models.Article)
	for _, art := range articles {
		grouped[art.Edition.Year] = append(grouped[art.Edition.Year], art)
	}
	return grouped, len(articles), nil
}

func setupSubscriptionRoutes(router *gin.Engine, db *gorm.DB, store *services.GormStore, log *zap.Logger) {
	rg := router.Group("/subscriptions")

	rg.GET("/", func(c *gin.Context) {
		var subs []models.Subscription
		if err := db.Find(&subs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, subs)
	})

	rg.POST("/", func(c *gin.Context) {
		var payload struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if payload.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
			return
		}
		if payload.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		author, err := store.GetOrCreateAuthor(strings.TrimSpace(payload.Name))
		if err != nil {
			log.Error("Failed to resolve author for subscription", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var existing models.Subscription
		err = db.Where("email = ? AND author_id = ?", payload.Email, author.ID).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{
				"message": "Subscription already exists",
				"id":      existing.ID,
				"email":   existing.Email,
				"author":  author.Name,
			})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		sub := models.Subscription{Email: payload.Email, AuthorID: &author.ID}
		if err := db.Create(&sub).Error; err != nil {
			log.Error("Failed to create subscription", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create subscription"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":      sub.ID,
			"email":   sub.Email,
			"author":  author.Name,
			"message": "Subscription created successfully",
		})
	})
}

func setupScrapeRoutes(router *gin.Engine, scraper *services.ScrapeService, log *zap.Logger) {
	rg := router.Group("/scrape")

	rg.POST("/", func(c *gin.Context) {
		var payload struct {
			Query      string `json:"query" binding:"required"`
			EventName  string `json:"event_name" binding:"required"`
			Year       int    `json:"year"`
			MaxResults int    `json:"max_results"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query and event_name are required"})
			return
		}

		go func() {
			result, err := scraper.Run(context.Background(), payload.Query, payload.EventName, payload.Year, payload.MaxResults)
			if err != nil {
				log.Error("Async scrape failed", zap.Error(err))
				return
			}
			articlesImportedCounter.Add(float64(len(result.Created)))
			log.Info("Async scrape completed",
				zap.String("query", payload.Query),
				zap.Int("new_articles", len(result.Created)))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": fmt.Sprintf("Scrape for %q triggered.", payload.Query)})
	})
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}

func splitAuthorNames(s string) []string {
	s = strings.ReplaceAll(s, ";", ",")
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func uintForm(c *gin.Context, field string) uint {
	v, err := strconv.ParseUint(c.PostForm(field), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func intForm(c *gin.Context, field string) int {
	v, err := strconv.Atoi(c.PostForm(field))
	if err != nil {
		return 0
	}
	return v
}
