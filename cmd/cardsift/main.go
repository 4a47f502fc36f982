// Command cardsift synchronizes a Trello board into a local SQLite store
// and extracts contact records from card text via the Anthropic API.
package main

func main() {
	Execute()
}
