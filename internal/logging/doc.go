// Package logging provides structured logging for stagehand.
//
// It wraps Go's log/slog with a JSON handler and adds child loggers that carry
// orchestration context (component, scene, screen, transition) so that a
// single run can be filtered after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	scenes := logger.WithComponent("scene")
//	scenes.WithScene("Game").Info("load started", "additive", false)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"load started","component":"scene","scene":"Game","additive":false}
//
// # Testing
//
// [NewWriterLogger] writes to any io.Writer, which lets tests capture log
// lines in a bytes.Buffer and assert on them. [NopLogger] discards output.
package logging
