// Package grading turns a learner's raw answer into a 0..3 score and a short
// explanation. Each card type has its own strategy; malformed answers never
// produce an error, they score 0 with a message instead.
package grading
