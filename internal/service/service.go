package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/static-website/internal/config"
	"gitlab.com/dirk.krummacker/static-website/internal/model"
)

// retention is how long a contact message is kept before its ttl expires.
const retention = 365 * 24 * time.Hour

// db is a handle to the database.
var db *sqlx.DB

// insert is a prepared statement for storing a contact message on the database.
var insert *sqlx.NamedStmt

// selectWhereId is a prepared statement for selecting contact messages with a given id.
var selectWhereId *sqlx.Stmt

// logger receives everything the service has to report.
var logger = zap.NewNop()

// now and newID are replaced in unit tests.
var (
	now   = time.Now
	newID = uuid.NewString
)

// CreateDatabase opens the MySQL database described by the configuration.
func CreateDatabase(cfg *config.Config) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	return sqlDB, nil
}

// SetLogger replaces the service's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// SetupDatabaseWrapper initializes the sqlx database wrapper with the specified sql database. It
// then prepares all statements. The database argument can be a real database for production use
// or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB) error {
	var err error
	db = sqlx.NewDb(sqlDB, "mysql")

	// Prepared statements offer a significant speed increase if executed many times.
	insert, err = db.PrepareNamed(`
		INSERT INTO contact_messages (id, category, name, email, message, timestamp, ttl)
		VALUES (:id, :category, :name, :email, :message, :timestamp, :ttl)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare insert: %w", err)
	}
	selectWhereId, err = db.Preparex(`
		SELECT * FROM contact_messages WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("could not prepare select: %w", err)
	}
	return nil
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(cfg *config.Config) *gin.Engine {
	var router *gin.Engine
	if cfg.GinLoggingEnabled() {
		router = gin.Default()
	} else {
		logger.Info("Turning off HTTP request logging.")
		router = gin.New()
		router.Use(gin.Recovery())
	}
	router.GET("/health", health)

	contact := router.Group("/contact", cors(cfg.CORSAllowOrigin))
	contact.POST("", createContactMessage)
	contact.OPTIONS("", preflight)
	contact.GET("/:id", findContactMessageByID)
	return router
}

// cors adds the headers a browser needs to post the form from the website's own origin.
func cors(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Next()
	}
}

// preflight answers the browser's CORS preflight request.
func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// health responds with 200 if the database can be reached.
//
// Example REST API call:
//
//	> curl http://localhost:8080/health
func health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Warn("database not reachable", zap.Error(err))
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok"})
}

// contactRequest is the JSON posted by the website's contact form.
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// createContactMessage stores the message specified in the request's JSON. Leading and
// trailing white space is removed from all fields, and all fields are required. It responds
// with the id assigned to the message.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Erika Mustermann", "email": "erika@example.com", "message": "Hallo"}'
func createContactMessage(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	msg := model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	received := now().UTC()
	msg.Id = newID()
	msg.Category = model.CategoryContactForm
	msg.Timestamp = received.Format("2006-01-02T15:04:05.000000")
	msg.Ttl = received.Add(retention).Unix()

	if _, err := insert.Exec(&msg); err != nil {
		logger.Error("could not store contact message", zap.String("id", msg.Id), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	logger.Info("contact message stored", zap.String("id", msg.Id))
	c.IndentedJSON(http.StatusOK, gin.H{
		"message": "Contact form submitted successfully",
		"id":      msg.Id,
	})
}

// findContactMessageByID locates the contact message whose id matches the id parameter of the
// request URL, then returns that message as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact/0f8e2a3c-6f43-4a53-9a0e-2f1c2d3e4f50
func findContactMessageByID(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	var messages []model.ContactMessage
	if err := selectWhereId.Select(&messages, id); err != nil {
		logger.Error("could not select contact message", zap.String("id", id), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if len(messages) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact message not found"})
	} else {
		c.IndentedJSON(http.StatusOK, messages[0])
	}
}
