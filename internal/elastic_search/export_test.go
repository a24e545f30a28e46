package elastic_search

var PersistBackoff = &persistBackoff
