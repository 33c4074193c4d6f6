// Package processor contains the translation pipeline. It loads the
// vocabulary dataset and the checkpoint, plans chunks per target language,
// drives the translator through the retry controller, persists progress
// after every chunk and writes the finished dataset. This package serves as
// the coordinator between all other components.
package processor
