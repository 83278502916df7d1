// Package sproutsync connects a SproutVideo account to a host that keeps a
// synchronized Videos table.
//
// Overview
//
// The connector core lives in the sprout package: an API client, the
// enrichment that turns raw API videos into table rows, a paginated sync
// driver and the add-tag action. The root package wires that core to the
// host-side pieces built from configuration:
//
//   - NewClient: a sprout.Client backed by the caching HTTP fetcher
//   - OpenStore: the JSON file store, or MySQL when a DSN is configured
//
// Quick Start
//
// Sync one page of videos:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client := sproutsync.NewClient(cfg)
//	page, err := client.SyncVideos(ctx, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, v := range page.Videos {
//		fmt.Println(v.Title, v.Duration, v.Tags)
//	}
//
// Continue with the returned continuation until it is nil:
//
//	for page.Continuation != nil {
//		page, err = client.SyncVideos(ctx, page.Continuation, nil)
//		...
//	}
//
// Add a tag, creating it on the account if needed:
//
//	video, err := client.AddTag(ctx, "d398dab91815e1c45a", "Launch")
//
// Run a resumable sync into a store:
//
//	store, err := sproutsync.OpenStore(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//	result, err := host.NewSyncManager(client, store).Run(ctx, host.RunOptions{})
//
// Configuration
//
// Settings load from multiple sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (sproutsync.json or ~/.config/sproutsync/sproutsync.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - SPROUTSYNC_API_KEY: SproutVideo API key (required)
//   - SPROUTSYNC_BASE_URL: API root, default https://api.sproutvideo.com/v1/
//   - SPROUTSYNC_TIMEOUT: Per-request timeout
//   - SPROUTSYNC_USER_AGENT: User-Agent header
//   - SPROUTSYNC_CACHE_ENABLED: Serve cacheable GETs from memory (true/false)
//   - SPROUTSYNC_STORE_PATH: JSON store file
//   - SPROUTSYNC_MYSQL_DSN: Use MySQL instead of the JSON store
//   - SPROUTSYNC_LISTEN_ADDR: Address for "sproutsync serve"
//   - SPROUTSYNC_MAX_PAGES: Default page cap per sync run
//
// Error Handling
//
// Checking for sentinel errors:
//
//	if errors.Is(err, sproutsync.ErrVideoNotFound) {
//		fmt.Println("No such video")
//	}
//
// Telling caller mistakes apart from remote failures:
//
//	if sproutsync.IsUserError(err) {
//		fmt.Println("Fix the input:", err)
//	}
//
// Extracting request details:
//
//	var reqErr *sproutsync.RequestError
//	if errors.As(err, &reqErr) {
//		fmt.Printf("%s %s answered %d\n", reqErr.Method, reqErr.Endpoint, reqErr.StatusCode)
//	}
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - sprout: API client, enrichment, sync and tag action
//   - http: Fetcher with API key injection, domain allowlist and TTL cache
//   - host: Resumable sync runs and action write-back
//   - storage, storage/mysql: Persistent rows and sync state
//   - server: HTTP surface
//   - config: Configuration management
package sproutsync
