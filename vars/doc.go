// Package vars builds the variable context of an fml run from workspace
// status stamps, context files and NAME=VALUE assignments.
package vars
