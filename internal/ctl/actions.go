package ctl

// Indirection layer to allow stubbing in tests

var (
	fnInstallParrot       = installParrot
	fnMakeVenv            = makeVenv
	fnInstallRequirements = installRequirements
	fnInstallTorch        = installTorchDev
	fnDownloadWeights     = downloadWeights
	fnConvertWeights      = convertWeights
	fnPrepareDataset      = prepareDataset

	fnFinetune = finetuneAdapter
	fnGenerate = generateAdapter
)
