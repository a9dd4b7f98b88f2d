package db

// SchemaSQL defines the saved content table. Field names follow the
// structured content wire shape.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS saved_content SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS headline ON saved_content TYPE string ASSERT string::len($value) > 0;
    DEFINE FIELD IF NOT EXISTS description ON saved_content TYPE string ASSERT string::len($value) > 0;
    DEFINE FIELD IF NOT EXISTS cta ON saved_content TYPE string ASSERT string::len($value) > 0;
    DEFINE FIELD IF NOT EXISTS hashtags ON saved_content TYPE string ASSERT string::len($value) > 0;
    DEFINE FIELD IF NOT EXISTS platform ON saved_content TYPE string
        ASSERT $value IN ["instagram", "facebook", "tiktok", "twitter", "linkedin", "marketplace", "ecommerce"];
    DEFINE FIELD IF NOT EXISTS session_id ON saved_content TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS message_id ON saved_content TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON saved_content TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS saved_content_platform ON saved_content FIELDS platform;
    DEFINE INDEX IF NOT EXISTS saved_content_created ON saved_content FIELDS created;
`
