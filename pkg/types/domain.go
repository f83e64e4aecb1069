package types

// Checkpoint represents a pretrained model checkpoint on disk.
type Checkpoint struct {
	// Model repository identifier, e.g. "togethercomputer/RedPajama-INCITE-Base-3B-v1".
	RepoID string `json:"repo_id"`
	// Absolute path to the checkpoint directory.
	Dir string `json:"dir"`
	// Whether the checkpoint has been converted to the lit-parrot layout
	// (lit_model.pth + lit_config.json present).
	Converted bool `json:"converted"`
}

// Dataset represents a prepared training dataset directory.
type Dataset struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// Adapter represents a fine-tuned adapter weights file keyed by iteration.
type Adapter struct {
	// Absolute path to the iter-NNNNNN.pth file.
	Path string `json:"path"`
	// Iteration number parsed from the filename.
	Iteration int `json:"iteration"`
}

// StatusReport summarizes all artifacts discovered in the work tree.
type StatusReport struct {
	Checkpoints []Checkpoint `json:"checkpoints"`
	Datasets    []Dataset    `json:"datasets"`
	Adapters    []Adapter    `json:"adapters"`
}
