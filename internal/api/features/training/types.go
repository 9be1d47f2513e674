package training

import "github.com/leapstack-labs/leapml/internal/trainer"

// TrainRequest names the model, the split files and the target column.
type TrainRequest struct {
	ModelName    string `json:"model_name"`
	TrainPath    string `json:"train_path"`
	TestPath     string `json:"test_path"`
	TargetColumn string `json:"target_column"`
}

// TrainResponse carries the evaluation of a trained model.
type TrainResponse struct {
	Success bool             `json:"success"`
	Results *trainer.Results `json:"results"`
}

// ModelsResponse lists what the pipeline can do.
type ModelsResponse struct {
	Models  []string `json:"models"`
	Methods []string `json:"methods"`
}
