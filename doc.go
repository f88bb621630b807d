// Package discord provides a sarah.Adapter implementation for Discord.
//
// Message events are converted into sarah.Input so that go-sarah commands can
// answer them. Reaction events, which go-sarah has no notion of, are handed to
// an EventHandler given via WithEventHandler, together with every guild message.
//
// Subpackages implement the bot's behavior on top of this adapter:
// discussion manages per-message discussion channels, predicate evaluates role
// expressions, coliru and cppref talk to the compile service and the wiki, and
// command wires them into go-sarah commands.
package discord
