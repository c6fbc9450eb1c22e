// Package codec provides ready-made record codecs.
//
//	cfg := record.New("Config").
//		Schema(fields).
//		Codec("yaml", codec.YAML()).
//		MustDone()
//
// Every codec here returns a record.CodecDef; decoded fields still pass
// through the record constructor, so they are defaulted and validated.
package codec
