// Package engine implements k-Sequitur grammar induction.
//
// The engine discovers adjacent symbol pairs that repeat at least k times,
// replaces them with new rule symbols, and repeats until the sequence stops
// changing. The result is a context-free grammar whose rules expose the
// repeated substructure of the input.
//
// ARCHITECTURE:
//
// One induction run is a sequence of layers. Each layer:
//  1. buildLayer scans the current sequence once, counting adjacent pairs and
//     minting a rule the moment a pair's running count reaches k
//  2. the minted rules are inverted into a per-layer reverse lookup
//  3. rewrite replaces matching pairs greedily, left to right, without overlap,
//     and tallies how often each rule fired
//
// Induce repeats layers until a layer's output equals its input (the fixpoint),
// accumulating every rule into one RuleTable and summing usage counts.
// Expand unfolds any symbol back into the raw terminals it stands for.
//
// CRITICAL PATTERNS:
//
// Single pass bookkeeping:
// The running pair counts, the "preceding counted pair" slot and the skip flag
// are local to one buildLayer call. The order of the checks inside the scan is
// significant; downstream usage counts depend on it.
//
// Engine-owned counter:
// Rule ids come from the engine's RuleCounter. The counter survives across
// Induce calls on the same Engine so ids never collide between runs of one
// engine; New starts a fresh counter.
//
// Determinism:
// No randomness, no map iteration on any path that affects output order.
// The same input, k, marker and starting counter always yield the same grammar.
//
// An Engine is not safe for concurrent use.
package engine
