// Command midend-ir-ls is a language server that hovers over the mid-end's
// textual IR output rather than over source text: a protocol.Handler built
// from a handler struct, served over stdio via glsp/server.
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"midend/internal/irls"
)

const lsName = "midend-ir-ls"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := irls.NewHandler()
	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentHover:     h.TextDocumentHover,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting midend-ir-ls server...")
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting midend-ir-ls server:", err)
		os.Exit(1)
	}
}
