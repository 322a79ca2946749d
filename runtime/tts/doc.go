// Package tts turns text into downloadable audio locations by driving the
// remote sounds service, which renders asynchronously and limits the length
// of each request.
//
// # Architecture
//
// The package provides:
//   - Service, the caller-facing interface (text in, ordered locations out)
//   - Renderer, one chunk to one location
//   - SoundsClient, the submit-then-poll client for the sounds service
//   - Orchestrator, which chunks text and renders every chunk concurrently
//   - SubmissionError, PollError, ProtocolError and TimeoutError
//
// # Usage
//
//	client := tts.NewSounds(tts.DefaultSoundsConfig())
//	orch := tts.NewOrchestrator(client)
//	locations, err := orch.CreateAudio(ctx, "Olá, mundo. Tudo bem?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, loc := range locations {
//	    fmt.Println(loc)
//	}
//
// Locations are returned in chunk order. Any chunk failure fails the whole
// request and no partial list is returned.
package tts
