package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vedicroots/vedicroots/backend/cms-services/handlers"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/content"
)

// Standalone content service: serves the public content API without auth or
// session infrastructure. Useful for local frontend development and previews;
// mutations are open, so never expose this binary publicly.
func main() {
	port := os.Getenv("CONTENT_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	var repo content.Repository
	if dir := os.Getenv("CONTENT_DATA_DIR"); dir != "" {
		fr, err := content.NewFileRepository(dir)
		if err != nil {
			log.Fatalf("cannot open content directory %s: %v", dir, err)
		}
		repo = fr
	} else {
		log.Printf("CONTENT_DATA_DIR not set, using memory-backed repo")
		repo = content.NewMemoryRepository()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	noAuth := func(c *gin.Context) { c.Next() }
	handlers.NewContentHandler(content.NewStore(repo)).Register(r, noAuth)

	log.Printf("content service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
