package product

// IndexMapping is the Elasticsearch mapping for the products index.
// product_uuid is the storage key; name is the only full-text field, the
// low-cardinality attributes are keywords so term filters stay exact.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "product_id":   {"type": "long"},
      "product_uuid": {"type": "keyword"},
      "creator_id":   {"type": "keyword"},
      "category":     {"type": "keyword"},
      "name":         {"type": "text"},
      "brand":        {"type": "keyword"},
      "price":        {"type": "double"},
      "created_at":   {"type": "date"},
      "updated_at":   {"type": "date"}
    }
  }
}`
