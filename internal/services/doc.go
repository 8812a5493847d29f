// Package services holds cross-cutting helpers shared by the mail, LLM, and
// workflow components: the error taxonomy used to classify failures as
// task-fatal or batch-local, and context carriage for task, sender, stage,
// and batch identifiers so loggers can tag lines automatically.
package services
