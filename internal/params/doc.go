// Package params layers default field values onto parsed content records.
//
// Defaults come from --set key=value flags and --set-file .env files. They
// fill fields a content source leaves absent (a CSV without a "units"
// column, say) and never overwrite a value a source actually provides.
// Keys are canonicalized through the alias table, so --set definition=...
// and --set attribute_definition=... name the same field.
package params
