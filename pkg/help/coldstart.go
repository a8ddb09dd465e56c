package help

const ColdstartYAML = `# url-importer Quick Start

sources:
  threads: "twitter.com, x.com and nitter links; every page of the author's chain"
  web: "any other http(s) URL; conversion API when api_endpoint is set, local extraction otherwise"

commands:
  import_thread: |
    url-importer import https://x.com/alice/status/1234567890

  import_page: |
    url-importer import --title "Reading list" --author "Jane Doe" https://example.com/post

  import_many: |
    url-importer import --workers 3 url1 url2 url3

  history: |
    url-importer history --limit 10
    url-importer history show        # assets of the latest import
    url-importer history show 42

  settings: |
    url-importer settings show
    url-importer settings set vault_dir=~/notes origin=https://nitter.net
    url-importer settings set asset_naming=url-hash    # fetch repeated media once
    url-importer settings set cache_dir=~/.cache/url-importer cache_ttl_minutes=120
    url-importer settings set headers.cookie="hlsPlayback=on"

layout:
  thread_document: "Tweet - <id>.md"
  thread_assets: "assets/<id>/<kind>_<suffix>.<ext>"
  web_document: "<folder>/<title>.md"

notes:
  - "An existing document is opened, never rebuilt or overwritten"
  - "Media that cannot be fetched is written as 'Missing: <url>'"
  - "Logs are JSON on stderr; use --quiet or --verbose"
`
