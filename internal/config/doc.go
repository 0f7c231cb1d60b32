// Package config loads runtime configuration for the detector.
//
// Configuration merges three layers, later layers winning: built-in
// defaults taken from the pipeline packages, an optional YAML file, and
// RCNN_DETECT_* environment variables (dots become underscores, so
// nms.iou_threshold is RCNN_DETECT_NMS_IOU_THRESHOLD).
//
// The Config type mirrors the file layout; helper methods translate its
// sections into the parameter structs the pipeline packages consume.
package config
