package vulkan

/**
 * @brief Max number of push constant ranges in a pipeline layout.
 * @note 32 is the max number of ranges we can ever have, since the Vulkan spec
 * only guarantees 128 bytes of push constants with 4-byte alignment.
 */
const VULKAN_MAX_PUSH_CONSTANT_RANGES int = 32

/**
 * @brief Default number of descriptor sets a single allocator pool holds.
 * @todo TODO: expose per-type ratios in the config file
 */
const VULKAN_DEFAULT_SETS_PER_POOL uint32 = 1000
