// Package ledger keeps a history of uploaded documents.
//
// Every partition that reaches the server leaves one [Record]: its title,
// part number, page range size, archive size, edit URL and upload time.
// The CLI's history command reads it back.
//
// # Stores
//
// [FileStore] appends JSON lines to a local file and is the default.
// [MongoStore] writes the same records to a MongoDB collection so a team
// can share one history. [Nop] discards everything.
//
//	store, err := ledger.NewFileStore(ledger.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//	_ = store.Add(ctx, ledger.NewRecord("Roadmap (Part 1)", 1, 4, 81234, editURL))
package ledger
