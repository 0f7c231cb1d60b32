// Package nms implements greedy non-maximum suppression over scored,
// classified boxes.
//
// Suppression runs independently per class: candidates are sorted by
// descending confidence, the best remaining candidate is kept, and every
// lower-scoring candidate of the same class whose intersection-over-union
// with it exceeds the threshold is discarded. The process repeats until no
// candidates remain, then kept indices are unioned across classes.
//
// # Determinism
//
// The per-class sort is stable, so candidates with equal scores keep their
// input order and the lower input index wins. Classes are visited in
// ascending id order. Given identical inputs the kept set and its order are
// fully deterministic.
//
// # Guarantees
//
//   - Empty input produces an empty result, never an error.
//   - Any two kept boxes of the same class have IoU <= the threshold.
//   - Suppressing a suppressed result again returns it unchanged.
package nms
