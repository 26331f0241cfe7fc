// Package credentials resolves the API tokens the metadata adapters need.
//
// A Provider checks the configured value, the environment, and a local TOML
// store in that order, and finally asks the operator when a console is
// attached. Answers typed at the prompt are persisted so the question is only
// asked once per machine. Adapters receive the resolved value as a
// constructor argument.
package credentials
