// Package server implements the no-cache static file server.
//
// A Server wraps a Fiber application that serves files from a fixed root
// directory. Every response, including 404 and other error responses, carries
// headers that forbid client and proxy caching, so edits on disk show up on
// the next reload.
//
// # Configuration
//
// The Config struct defines the bind host and port, optional directory
// browsing and the graceful shutdown bound. The root directory is computed by
// the caller and set on Config.Root before the server is created.
//
// # Lifecycle
//
//	srv := server.New(cfg, logg)
//	if err := srv.Start(); err != nil {
//	    // *server.BindError: port in use or bad host
//	}
//	defer srv.Stop()
//	err := <-srv.Wait()
package server
