// Package server implements the line-delimited JSON-RPC serve mode.
//
// The server reads one JSON-RPC 2.0 request per line from stdin and
// writes one response per line to stdout. Logs go to stderr, keeping
// stdout clean for the protocol.
//
// # Methods
//
//   - detect: run the detection pipeline on one image, optionally
//     returning a base64 PNG with the detections drawn in
//   - detect_batch: detect over many images, fanned out across a
//     bounded worker pool, results in input order
//   - labels: the class names of the loaded model
//   - info: backend, version and cache statistics
//   - ping: health check
//
// A detect exchange looks like:
//
//	{"jsonrpc":"2.0","id":1,"method":"detect","params":{"path":"shelf.png"}}
//	{"jsonrpc":"2.0","id":1,"result":{"path":"shelf.png","result":{"width":600,...}}}
//
// # Concurrency
//
// detect runs on the request goroutine. detect_batch spreads its images
// over a pool of Options.Workers goroutines; each result lands in an
// indexed slice, so input order is preserved and no intermediate state
// is shared. Classification itself serializes on the model session.
// Responses are written only by the Run goroutine and never interleave
// on stdout.
//
// # Image Caching
//
// Decoded images are cached by path and reused across requests for the
// lifetime of the process. The info method reports the cache size.
//
// # Error Handling
//
// Failures come back as JSON-RPC error objects:
//   - code -32602: malformed or missing params
//   - code -32601: unknown method
//   - code -32000: the detection itself failed
//
// In a batch, a failed image reports its error in place and the other
// images still complete.
//
// # Usage
//
// The server is typically started from the CLI's -serve mode:
//
//	srv, err := server.New(server.Options{Detector: det, Logger: logger})
//	if err != nil {
//	    logger.Fatal("server init", zap.Error(err))
//	}
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("server stopped", zap.Error(err))
//	}
package server
