package help

const ColdstartYAML = `# bac-archiver Quick Start

commands:
  scrape_current_year: |
    bac-archiver scrape --year 2025

  scrape_live_host: |
    bac-archiver scrape --year 2025 --archive-hosts=false

  dry_run: |
    bac-archiver scrape --year 2025 --dry-run --format yaml

  upload_to_r2: |
    bac-archiver scrape --year 2025 --sink s3 --s3-endpoint <account>.r2.cloudflarestorage.com --s3-bucket exams

  shared_ledger: |
    bac-archiver scrape --year 2025 --ledger-backend redis --redis-addr localhost:6379

  classify_names: |
    bac-archiver classify E_c_matematica_M_mate-info_2025_var_model_LRO.pdf
    unzip -Z1 E_d_informatica_2025.zip | bac-archiver classify --origin "http://subiecte2025.edu.ro/2025/simulare/simulare_bac_XII/"

  inspect_rules: |
    bac-archiver rules > rules.yaml
    bac-archiver scrape --year 2025 --rules rules.yaml

  history: |
    bac-archiver db runs
    bac-archiver db run --placements

  ledger: |
    bac-archiver ledger list
    bac-archiver ledger check http://subiecte.edu.ro/2024/bacalaureat/Subiecte_si_bareme/E_c_istorie_2024.zip

layout:
  - "{subject}/pages/{track}/{year}/{session}/{filename}"
  - "Language suffix (_LRO, _LMA, ...) is stripped from the filename"
  - "Answer keys for informatics fan out to both -C and -Pascal tracks"
  - "Unknown session goes to the '-' directory"

ledger_invariants:
  - "A source URL is recorded only after one of its documents was placed"
  - "Recorded sources are never fetched again"
  - "Dry runs never write the ledger"

error_behavior:
  - "Malformed page URLs: fail fast before fetching"
  - "Fetch, unpack, parse and sink errors: logged, run continues"
  - "Exit codes: 0=success, 1=partial failure, 2=setup error"
`
