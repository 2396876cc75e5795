// Package docsearch embeds the docsearch document search pipeline in a Go
// program without running the HTTP service.
//
// Documents are stored in Redis (RediSearch) or PostgreSQL, raw bytes in a
// local bbolt file, and result pages in a Redis or in-memory cache.
//
//	client, err := docsearch.New(ctx,
//	    docsearch.WithRedis("localhost:6379", ""),
//	    docsearch.WithBlobPath("/var/lib/docsearch/blobs.db"),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	doc, _ := client.Documents().Upload(ctx, docsearch.UploadRequest{
//	    Filename: "annual-report.pdf",
//	    Data:     data,
//	})
//	res, _ := client.Search("annual revenue").
//	    Mode(docsearch.ModeBoolean).
//	    SortBy(docsearch.SortCreatedAt, docsearch.Desc).
//	    Limit(20).
//	    Do(ctx)
//
// Every change to the corpus clears the result cache, so a search never
// serves a page computed before an upload or delete.
package docsearch
