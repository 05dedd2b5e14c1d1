package metrics

// Namespace prefixes every metric exported by the app.
const Namespace = "tnt"

// LabelModel distinguishes token counters by OpenAI model.
const LabelModel = "model"
