// Package selection picks the next card to study in a document. It chooses a
// topic (favouring struggling ones), gates card difficulty on the topic's
// knowledge score, then walks a fixed sequence of candidate pools. The random
// source is injected so selection can be replayed in tests.
package selection
