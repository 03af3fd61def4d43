// scopectl runs the oscilloscope signal core offline against generated
// waveforms or capture files and prints JSON.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("scopectl failed")
		os.Exit(1)
	}
}
