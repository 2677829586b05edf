// Command picodump parses a raw HTTP/1.x message and prints it as JSON.
//
//	picodump [-response] [-keep-trailer] [-headers N] [-max-head N] [file]
//
// The message is read from the file, or from stdin if none is given.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/indigo-web/pico/config"
	"github.com/indigo-web/pico/internal/dump"
)

func main() {
	cfg := config.Default()

	response := flag.Bool("response", false, "parse a response instead of a request")
	keepTrailer := flag.Bool("keep-trailer", false, "leave the trailer of a chunked body undecoded")
	flag.IntVar(&cfg.Headers.MaxNumber, "headers", cfg.Headers.MaxNumber, "maximal number of header fields")
	flag.IntVar(&cfg.Buffer.Size.Maximal, "max-head", cfg.Buffer.Size.Maximal, "maximal size of the message head in bytes")
	flag.Parse()

	cfg.Chunked.ConsumeTrailer = !*keepTrailer

	var input io.Reader = os.Stdin
	if path := flag.Arg(0); path != "" {
		file, err := os.Open(path)
		if err != nil {
			log.Fatal(err)
		}

		defer file.Close()
		input = file
	}

	kind := dump.KindRequest
	if *response {
		kind = dump.KindResponse
	}

	msg, err := dump.Read(input, cfg, kind)
	if err != nil {
		log.Fatalf("picodump: %s", err)
	}

	if err = dump.JSON(os.Stdout, msg); err != nil {
		log.Fatal(err)
	}
}
