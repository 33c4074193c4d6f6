// Package importer bulk loads cards from a JSON export or a CSV file into
// a deck of the card store. Cards are inserted in batches and appended
// after the deck's current last position.
package importer
