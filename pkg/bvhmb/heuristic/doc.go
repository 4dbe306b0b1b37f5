// Package heuristic provides concrete object- and temporal-split
// heuristics for the motion-blur BVH builder: a binned surface-area-
// heuristic scan over primitive centroids, and a two-bucket scan over the
// shutter interval. Both are injected into bvhmb.Selector, which knows
// nothing about bins or buckets — only about comparing SAH costs.
package heuristic
