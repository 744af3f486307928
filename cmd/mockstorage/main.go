// Package main runs the mock Edge Storage server as a standalone process for
// local development and end-to-end runs.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beautyhome/studio-api/internal/testutil/mockstorage"
)

// getPort returns the port from the PORT environment variable or the default.
func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	return port
}

// getPortAddr formats the port into a server address.
func getPortAddr(port string) string {
	return ":" + port
}

// getCredentials returns the zone and access key the mock accepts.
func getCredentials() (zone, accessKey string) {
	zone = os.Getenv("STORAGE_ZONE")
	if zone == "" {
		zone = mockstorage.DefaultZone
	}
	accessKey = os.Getenv("STORAGE_ACCESS_KEY")
	if accessKey == "" {
		accessKey = mockstorage.DefaultAccessKey
	}
	return zone, accessKey
}

// createServer creates a mock storage server for the configured zone.
func createServer() *mockstorage.Server {
	return mockstorage.NewWith(getCredentials())
}

// createHTTPServer creates an http.Server with the given port and handler.
func createHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              getPortAddr(port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// setupShutdownHandler closes httpServer on SIGINT or SIGTERM.
func setupShutdownHandler(httpServer *http.Server) <-chan bool {
	done := make(chan bool)
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down mockstorage server...")
		//nolint:errcheck
		httpServer.Close()
		close(done)
	}()
	return done
}

// runHealthCheck lists the zone root of the local server.
// Returns 0 on success, 1 on failure. Used by container HEALTHCHECK.
func runHealthCheck() int {
	zone, accessKey := getCredentials()
	return doHealthCheck("http://localhost:"+getPort()+"/"+zone+"/", accessKey)
}

// doHealthCheck performs the actual health check HTTP request.
func doHealthCheck(url, accessKey string) int {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 1
	}
	req.Header.Set("AccessKey", accessKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	//nolint:errcheck // Response body close errors are unrecoverable in health check
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "health" {
		os.Exit(runHealthCheck())
	}

	port := getPort()
	server := createServer()

	// Serve on a real listener rather than the embedded httptest one.
	httpServer := createHTTPServer(port, server.Handler())

	done := setupShutdownHandler(httpServer)

	log.Printf("mockstorage listening on :%s (zone %s)", port, server.Zone())
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}

	<-done
	log.Println("mockstorage stopped")
}
