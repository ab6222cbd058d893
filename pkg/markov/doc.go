/*
Package markov implements a first-order, character-level Markov chain that learns
transition counts from a word list and generates new, pronounceable-looking words.

The model is a WeightedGraph over a fixed alphabet: every character seen during
Fit plus the Boundary symbol, which marks both ends of a word. Weights are raw
transition counts stored in a dense matrix, and Generate samples each next
character from the highest-count share of its successors.

A fitted Chain can be saved to and loaded from a compact little-endian binary
file; see Save, Load and Decode.
*/
package markov
