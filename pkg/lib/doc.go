// Package lib provides a Go SDK to recover the passwords of encrypted archives
// programmatically.
//
// This package allows applications to run the same wordlist trials as the unarx
// CLI without shelling out to the binary. It is useful for scripting, automation
// and building tools on top of unarx.
//
// # Quick Start
//
// Create a client and unlock every archive of a directory:
//
//	client, err := lib.New(lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := client.Unlock(ctx, lib.UnlockOpts{
//	    ArchiveDir: "/data/archives",
//	    Passwords:  []string{"hunter2", "letmein"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, r := range summary.Results {
//	    fmt.Println(r.Archive, r.Status, r.Password)
//	}
//
// # Extractors
//
// The SDK supports two extractor types:
//
//   - [ExtractorCommand]: Runs the real extraction tools (7-Zip, unrar or WinRAR).
//     The tools can be replaced with [Config].Tools.
//   - [ExtractorFake]: In-memory simulation of the tools for unit testing, the
//     known archives are set with [Config].FakeArchives.
//
// # Progress
//
// Set [Config].OnProgress to receive the progress of every archive. The function
// is called from the trial goroutines so it must be safe for concurrent use and
// must not block.
//
// # Errors
//
// Only setup problems return an error (missing wordlist, no archives...), they
// can be checked with [errors.Is] against [ErrSetup], [ErrNotFound] and
// [ErrNotValid]. Problems of a single archive are reported in its result.
package lib
